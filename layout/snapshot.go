package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/ByLCY/fitbox/fit"
)

// Snapshot 以当前字号排版所有文本，返回可渲染的 Result。
func (d *Document) Snapshot() (*Result, error) {
	d.mu.Lock()
	out := &Result{
		Canvas: d.canvas,
		Resources: ResourceSet{
			Fonts:  maps.Clone(d.res.Fonts),
			Colors: maps.Clone(d.res.Colors),
			Styles: maps.Clone(d.res.Styles),
		},
		Meta: d.meta,
	}
	type pending struct {
		frame   int
		style   textStyle
		content string
		deco    Edges
		client  fit.Size
		box     TextBox
	}
	var texts []pending
	for i, f := range d.frames {
		out.Frames = append(out.Frames, FrameBox{
			ID:         f.id,
			X:          f.x,
			Y:          f.y,
			Width:      f.width,
			Height:     f.height,
			Padding:    f.padding,
			Border:     f.border,
			Background: f.background,
		})
		n := f.node
		if n == nil {
			continue
		}
		deco := n.decorationsLocked()
		texts = append(texts, pending{
			frame:   i,
			style:   n.style,
			content: n.content,
			deco:    deco,
			client:  f.clientLocked(),
			box: TextBox{
				ID:       n.id,
				Content:  n.content,
				X:        f.x + f.padding.Left + deco.Left,
				Y:        f.y + f.padding.Top + deco.Top,
				Font:     n.style.font.Name,
				FontSize: n.style.fontSize,
				Color:    n.color,
				Align:    n.align,
				Wrap:     n.style.wrap,
				Attrs:    maps.Clone(n.attrs),
			},
		})
	}
	d.mu.Unlock()

	for _, t := range texts {
		avail := t.client.Width - t.deco.Horizontal()
		lines, err := t.style.lines(d.ts, t.content, max(avail, minLineWidth))
		if err != nil {
			return nil, err
		}
		w, h := extent(lines)
		tb := t.box
		tb.Lines = lines
		tb.Width = max(avail, 0)
		tb.Height = h
		tb.LineHeight = t.style.lineHeight.Resolve(t.style.fontSize)
		outer := fit.Size{Width: w + t.deco.Horizontal(), Height: h + t.deco.Vertical()}
		tb.Overflow = !outer.Within(t.client)
		fb := &out.Frames[t.frame]
		fb.Texts = append(fb.Texts, tb)
	}
	return out, nil
}

// WriteDebugJSON 将快照以缩进 JSON 写入 path，父目录不存在时自动创建。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return errors.New("快照为空")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
