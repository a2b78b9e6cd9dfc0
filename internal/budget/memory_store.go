package budget

import (
	"context"
	"sync"
)

type ledgerKey struct {
	childID uint
	day     string
}

// MemoryStore 是 Store 的内存实现，用于测试和无数据库的嵌入场景
type MemoryStore struct {
	mu       sync.Mutex
	children map[uint]struct{}
	limits   map[uint]Breakdown
	usage    map[ledgerKey]Breakdown
	rewards  map[ledgerKey]Bonuses
}

// NewMemoryStore 构造空的 MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		children: make(map[uint]struct{}),
		limits:   make(map[uint]Breakdown),
		usage:    make(map[ledgerKey]Breakdown),
		rewards:  make(map[ledgerKey]Bonuses),
	}
}

// AddChild 登记孩子档案
func (s *MemoryStore) AddChild(childID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[childID] = struct{}{}
}

func (s *MemoryStore) ChildExists(_ context.Context, childID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.children[childID]
	return ok, nil
}

func (s *MemoryStore) Limits(_ context.Context, childID uint) (Breakdown, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limits, ok := s.limits[childID]
	return limits, ok, nil
}

func (s *MemoryStore) SaveLimits(_ context.Context, childID uint, limits Breakdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[childID] = limits
	return nil
}

func (s *MemoryStore) Usage(_ context.Context, childID uint, day string) (UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return UsageRecord{ChildID: childID, Day: day, Used: s.usage[ledgerKey{childID, day}]}, nil
}

func (s *MemoryStore) AddUsage(_ context.Context, childID uint, day string, delta Breakdown) (UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey{childID, day}
	used := s.usage[key].Add(delta)
	s.usage[key] = used
	return UsageRecord{ChildID: childID, Day: day, Used: used}, nil
}

func (s *MemoryStore) Rewards(_ context.Context, childID uint, day string) (RewardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RewardRecord{ChildID: childID, Day: day, Bonuses: s.rewards[ledgerKey{childID, day}]}, nil
}

func (s *MemoryStore) AddReward(_ context.Context, childID uint, day string, delta Bonuses) (RewardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey{childID, day}
	bonuses := s.rewards[key].Add(delta)
	s.rewards[key] = bonuses
	return RewardRecord{ChildID: childID, Day: day, Bonuses: bonuses}, nil
}
