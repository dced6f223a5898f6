package layout

import (
	"errors"
	"fmt"
)

// 以下错误代表构建脚本本身的缺陷，通过 panic 抛出，恢复后可用 errors.Is 判断。
var (
	ErrSessionActive = errors.New("构建会话已处于活动状态")
	ErrNoSession     = errors.New("没有活动的构建会话")
	ErrUnbalanced    = errors.New("容器打开/关闭不配对")
	ErrNotContainer  = errors.New("节点不是容器")
)

func misuse(err error, format string, args ...any) {
	panic(fmt.Errorf("layout: %w: %s", err, fmt.Sprintf(format, args...)))
}

// Builder 记录一次构建会话中当前打开的容器栈（根在栈底，最内层在栈顶）。
// 新建的节点总是登记为栈顶容器的子节点。
type Builder struct {
	manager *Manager
	root    *Node
	stack   []*Node
	done    bool
}

// Manager 返回会话所属的 Manager。
func (b *Builder) Manager() *Manager { return b.manager }

// Metrics 返回所属 Manager 的参数，控件据此设置字号等。
func (b *Builder) Metrics() Metrics { return b.manager.metrics }

// Root 返回本次会话的根容器，会话结束后仍然有效。
func (b *Builder) Root() *Node { return b.root }

// Current 返回当前插入目标容器。
func (b *Builder) Current() *Node {
	b.ensureActive()
	return b.stack[len(b.stack)-1]
}

// Depth 返回已打开（未关闭）的容器层数，不含根容器。
func (b *Builder) Depth() int { return len(b.stack) - 1 }

func (b *Builder) ensureActive() {
	if b == nil || b.done {
		misuse(ErrNoSession, "会话已结束")
	}
}

// Add 将节点登记为当前容器的子节点，不改变容器栈。
func (b *Builder) Add(node *Node) *Node {
	b.ensureActive()
	b.Current().Add(node)
	return node
}

// Leaf 创建一个绑定 h 的叶子并登记到当前容器。
func (b *Builder) Leaf(h Handle) *Node {
	return b.Add(NewLeaf(h))
}

// Open 将容器登记到当前容器并压栈，使其成为新的插入目标。必须与 Close 一一配对。
func (b *Builder) Open(container *Node) *Node {
	b.ensureActive()
	if container == nil || !container.IsContainer() {
		misuse(ErrNotContainer, "Open 只接受容器节点")
	}
	b.Current().Add(container)
	b.stack = append(b.stack, container)
	return container
}

// Close 弹出栈顶容器，恢复上一层为插入目标。
func (b *Builder) Close() {
	b.ensureActive()
	if len(b.stack) <= 1 {
		misuse(ErrUnbalanced, "没有可关闭的容器")
	}
	b.stack[len(b.stack)-1] = nil
	b.stack = b.stack[:len(b.stack)-1]
}

// Scope 打开容器并执行 fn，fn 以任何方式退出（包括 panic）都会关闭该容器。
func (b *Builder) Scope(container *Node, fn func(*Node)) *Node {
	b.Open(container)
	depth := len(b.stack)
	defer func() {
		if b.done {
			return
		}
		if len(b.stack) < depth || b.stack[depth-1] != container {
			if r := recover(); r != nil {
				panic(r)
			}
			misuse(ErrUnbalanced, "容器在作用域内被提前关闭")
		}
		// fn 中途 panic 时可能残留未关闭的子容器，一并弹出。
		b.stack = b.stack[:depth]
		b.Close()
	}()
	if fn != nil {
		fn(container)
	}
	return container
}

// Vertical 打开一个纵向容器并在其中执行 fn。
func (b *Builder) Vertical(fn func(*Node)) *Node {
	return b.Scope(NewVertical(), fn)
}

// Horizontal 打开一个横向容器并在其中执行 fn。
func (b *Builder) Horizontal(adjustWidth bool, fn func(*Node)) *Node {
	return b.Scope(NewHorizontal(adjustWidth), fn)
}

// End 结束会话并按 Manager 当前边界执行一次布局。仍有未关闭的容器时 panic。
func (b *Builder) End() {
	b.ensureActive()
	if len(b.stack) != 1 {
		misuse(ErrUnbalanced, "仍有 %d 个容器未关闭", len(b.stack)-1)
	}
	b.release()
	b.manager.forceLayout()
}

// release 结束会话但不触发布局。
func (b *Builder) release() {
	b.done = true
	b.stack = nil
	if b.manager.session == b {
		b.manager.session = nil
	}
}
