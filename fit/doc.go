// Package fit 计算文本目标在容器内不溢出的最大字号，并在容器尺寸或内容
// 变化时保持这一结果。
//
// 包内分三层：
//
//   - Strategy 为一次搜索生成 Measurement，即回答“字号 N 能否放下”的适配判定；
//   - Search 在 [min, max] 上做整数二分，Fit 在其外加上容器无面积时的短路；
//   - Session 是重新适配的控制器：信号经去抖后触发，任一时刻最多一轮适配，
//     Disconnect 释放全部订阅。
//
// 渲染引擎是外部协作者，只通过 Target、Container、SurfaceHost 与 Signals
// 接口可见。layout 包提供 CLI 使用的内存实现。
//
// 示例：
//
//	s, err := fit.FitFontToContainer(node, frame,
//	    fit.WithSizeRange(8, 160),
//	    fit.WithSignals(doc),
//	)
//	if err != nil {
//	    return err
//	}
//	defer s.Disconnect()
package fit
