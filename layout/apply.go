package layout

import "slices"

// ApplyReport 描述 Apply 对在线文档做出的修改。
type ApplyReport struct {
	Resized []string `json:"resized,omitempty"` // 尺寸或内边距变化的 frame
	Changed []string `json:"changed,omitempty"` // 内容变化的节点
	// Structural 为 true 表示 frame/节点集合不同，增量更新无法表达，调用方应重建文档。
	Structural bool `json:"structural,omitempty"`
}

// Empty 表示没有任何修改。
func (r ApplyReport) Empty() bool {
	return len(r.Resized) == 0 && len(r.Changed) == 0 && !r.Structural
}

// Apply 将 next 中的几何（尺寸、内边距、位置）与内容按 ID 同步到 live 上。
// 修改通过 Frame.Resize、Frame.SetPadding 与 Node.SetContent 完成，挂接在
// live 上的会话会经由各自的观察者重新适配。
// 结构变化时 live 不会被修改。
func Apply(live, next *Document) ApplyReport {
	var report ApplyReport
	liveFrames := live.Frames()
	nextFrames := next.Frames()
	if !sameShape(liveFrames, nextFrames) {
		report.Structural = true
		return report
	}

	for i, nf := range nextFrames {
		lf := liveFrames[i]
		want := nf.Size()
		resized := false
		if lf.Size() != want {
			resized = lf.Resize(want.Width, want.Height) == nil
		}
		if p := nf.Padding(); lf.Padding() != p {
			lf.SetPadding(p)
			resized = true
		}
		if resized {
			report.Resized = append(report.Resized, lf.id)
		}
		next.mu.Lock()
		x, y := nf.x, nf.y
		next.mu.Unlock()
		lf.Move(x, y)

		ln, nn := lf.Node(), nf.Node()
		if ln == nil {
			continue
		}
		next.mu.Lock()
		template := nn.template
		next.mu.Unlock()
		before := ln.Content()
		ln.SetContent(template)
		if ln.Content() != before {
			report.Changed = append(report.Changed, ln.id)
		}
	}
	return report
}

func sameShape(a, b []*Frame) bool {
	ids := func(fs []*Frame) []string {
		out := make([]string, 0, len(fs)*2)
		for _, f := range fs {
			out = append(out, f.id)
			if f.node != nil {
				out = append(out, "node:"+f.node.id)
			}
		}
		return out
	}
	return slices.Equal(ids(a), ids(b))
}
