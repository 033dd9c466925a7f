package server

import "go.uber.org/atomic"

// State 进程级就绪状态，Supervisor 写，探针读
// 仅用于对外展示，不参与任何正确性相关的同步
type State struct {
	ready *atomic.Bool
}

// NewState 创建就绪状态（初始为未就绪）
func NewState() *State {
	return &State{ready: atomic.NewBool(false)}
}

// SetReady 设置就绪状态，返回状态是否发生变化
func (s *State) SetReady(ready bool) bool {
	return s.ready.Swap(ready) != ready
}

// Ready 当前是否就绪
func (s *State) Ready() bool {
	return s.ready.Load()
}
