package layout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ByLCY/fitbox/fit"
)

// Surface 是挂在文档根下的隐藏测量面，宽度在创建时固定。
// 其上的克隆节点不可见、不参与交互，也不会影响任何 frame 的布局。
type Surface struct {
	doc   *Document
	width float64

	mu      sync.Mutex
	removed bool
}

var _ fit.Surface = (*Surface)(nil)

// Width 返回测量面宽度（px）。
func (s *Surface) Width() float64 { return s.width }

// Mount 实现 fit.Surface：深拷贝节点，并把影响布局的样式归一化：
// 去掉 margin/border/padding，宽度占满测量面，折行方式固定为 anywhere。
func (s *Surface) Mount(t fit.Target) (fit.Replica, error) {
	n, ok := t.(*Node)
	if !ok {
		return nil, fmt.Errorf("无法在测量面上克隆 %T", t)
	}
	if n.doc != s.doc {
		return nil, errors.New("节点不属于该测量面所在的文档")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return nil, errors.New("测量面已移除")
	}

	s.doc.mu.Lock()
	style := n.style
	content := n.content
	s.doc.mu.Unlock()
	style.wrap = WrapAnywhere

	return &replica{surface: s, style: style, content: content}, nil
}

// Remove 实现 fit.Surface，可重复调用。
func (s *Surface) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return
	}
	s.removed = true
	s.doc.removeSurface(s)
}

type replica struct {
	surface *Surface
	style   textStyle
	content string
}

func (p *replica) SetFontSize(px int) { p.style.fontSize = float64(px) }

func (p *replica) Height() (float64, error) {
	lines, err := p.style.lines(p.surface.doc.ts, p.content, max(p.surface.width, minLineWidth))
	if err != nil {
		return 0, err
	}
	_, h := extent(lines)
	return h, nil
}
