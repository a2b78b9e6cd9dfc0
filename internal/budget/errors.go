package budget

import "errors"

var (
	// ErrChildNotFound 在孩子档案不存在时返回
	ErrChildNotFound = errors.New("child not found")
	// ErrInvalidCategory 在类别无法识别时返回
	ErrInvalidCategory = errors.New("invalid screen time category")
	// ErrInvalidSource 在奖励来源无法识别时返回
	ErrInvalidSource = errors.New("invalid reward source")
	// ErrInvalidAmount 在分钟数不是正整数时返回
	ErrInvalidAmount = errors.New("minutes must be a positive integer")
	// ErrInvalidLimit 在每日上限配置不合法时返回
	ErrInvalidLimit = errors.New("invalid daily limit")
)
