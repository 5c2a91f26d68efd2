package fit

import "errors"

var (
	// ErrNilTarget 表示未传入目标元素。
	ErrNilTarget = errors.New("fit: 目标元素为空")
	// ErrNilContainer 表示未传入容器元素。
	ErrNilContainer = errors.New("fit: 容器元素为空")
	// ErrInvalidOptions 包装所有参数校验失败。
	ErrInvalidOptions = errors.New("fit: 参数无效")
	// ErrNoSurfaceHost 表示 clone 策略没有可创建测量面的宿主。
	ErrNoSurfaceHost = errors.New("fit: clone 策略需要测量面宿主")
)
