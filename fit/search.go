package fit

import "fmt"

// Search 返回 [minSize, maxSize] 中判定能放下的最大字号，区间内都放不下时
// 返回 max(1, minSize)。判定调用次数为 O(log(maxSize-minSize))。
//
// 判定出错时搜索中止，返回目前找到的最佳值。
func Search(minSize, maxSize int, o Oracle) (int, error) {
	lo := max(1, minSize)
	hi := maxSize
	best := lo
	for lo <= hi {
		mid := lo + (hi-lo)/2
		ok, err := o.Fits(mid)
		if err != nil {
			return best, fmt.Errorf("fit: 测量字号 %d 失败: %w", mid, err)
		}
		if ok {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best, nil
}

// Fit 用 strategy 在容器当前的内容区内为 target 搜索字号。容器没有可用面积时
// 不做任何测量，直接返回 max(1, minSize)。
func Fit(target Target, container Container, strategy Strategy, minSize, maxSize int) (int, error) {
	floor := max(1, minSize)
	bounds, err := container.ClientSize()
	if err != nil {
		return floor, fmt.Errorf("fit: 读取容器尺寸失败: %w", err)
	}
	if bounds.Empty() {
		return floor, nil
	}

	m, err := strategy.Begin(target, bounds)
	if err != nil {
		return floor, err
	}
	defer m.Release()

	best, err := Search(floor, maxSize, m)
	if err != nil {
		return best, err
	}
	return m.Result(best, floor), nil
}
