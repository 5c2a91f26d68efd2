package fit

import "fmt"

// Oracle 判断内容在候选字号下能否放下。结果随字号单调不增：Fits(x) 为 true
// 时，任意 y < x 的 Fits(y) 也为 true。
type Oracle interface {
	Fits(size int) (bool, error)
}

// OracleFunc 将函数适配为 Oracle。
type OracleFunc func(size int) (bool, error)

// Fits 实现 Oracle。
func (f OracleFunc) Fits(size int) (bool, error) { return f(size) }

// Measurement 是绑定到一次搜索的判定。搜索结束后无论成败都必须调用 Release。
type Measurement interface {
	Oracle
	// Result 将搜索结果换算为最终生效的字号。
	Result(best, minSize int) int
	Release()
}

// Strategy 为 bounds 内的目标准备一次 Measurement。
type Strategy interface {
	Begin(t Target, bounds Size) (Measurement, error)
}

// InPlace 直接在目标上试字号，并在两个方向上与容器比较。开销小，但目标会
// 依次呈现每个被试的字号，最终字号由调用方在搜索后写回。
//
// Slack 在生效前从搜索结果中减去，结果不低于最小字号。默认为 0。
type InPlace struct {
	Slack int
}

// Begin 实现 Strategy。
func (s InPlace) Begin(t Target, bounds Size) (Measurement, error) {
	return &inPlaceMeasurement{target: t, bounds: bounds, slack: s.Slack}, nil
}

type inPlaceMeasurement struct {
	target Target
	bounds Size
	slack  int
}

func (m *inPlaceMeasurement) Fits(size int) (bool, error) {
	m.target.SetFontSize(size)
	box, err := m.target.Box()
	if err != nil {
		return false, err
	}
	return box.Within(m.bounds), nil
}

func (m *inPlaceMeasurement) Result(best, minSize int) int {
	if m.slack <= 0 {
		return best
	}
	return max(best-m.slack, minSize)
}

func (m *inPlaceMeasurement) Release() {}

// Clone 在与容器等宽的离屏测量面上测量目标的深拷贝。宽度由构造固定，只比较
// 高度。结果生效之前不会触碰在线目标。
type Clone struct {
	Host SurfaceHost
}

// Begin 实现 Strategy。
func (s Clone) Begin(t Target, bounds Size) (Measurement, error) {
	if s.Host == nil {
		return nil, ErrNoSurfaceHost
	}
	surface, err := s.Host.NewSurface(bounds.Width)
	if err != nil {
		return nil, fmt.Errorf("fit: 创建测量面失败: %w", err)
	}
	replica, err := surface.Mount(t)
	if err != nil {
		surface.Remove()
		return nil, fmt.Errorf("fit: 挂载测量克隆失败: %w", err)
	}
	return &cloneMeasurement{surface: surface, replica: replica, limit: bounds.Height}, nil
}

type cloneMeasurement struct {
	surface Surface
	replica Replica
	limit   float64
}

func (m *cloneMeasurement) Fits(size int) (bool, error) {
	m.replica.SetFontSize(size)
	h, err := m.replica.Height()
	if err != nil {
		return false, err
	}
	return h <= m.limit, nil
}

func (m *cloneMeasurement) Result(best, _ int) int { return best }

func (m *cloneMeasurement) Release() { m.surface.Remove() }
