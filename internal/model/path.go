package model

import (
	"strconv"
	"strings"
)

// TreePath 评论的物化路径：祖先 ID 从根到父依次排列，最后一段是自身 ID，
// 以 "/" 连接，例如 "12/34/56"。根评论的路径就是自身 ID。
// 不变量：Depth() == 对应评论的 depth 字段。
type TreePath string

// RootPath 根评论的路径
func RootPath(id int64) TreePath {
	return TreePath(strconv.FormatInt(id, 10))
}

// Child 在当前路径下追加一个子评论 ID
func (p TreePath) Child(id int64) TreePath {
	if p == "" {
		return RootPath(id)
	}
	return p + TreePath("/"+strconv.FormatInt(id, 10))
}

// IDs 解析路径中的全部 ID（含自身），非法段被跳过
func (p TreePath) IDs() []int64 {
	if p == "" {
		return nil
	}
	segments := strings.Split(string(p), "/")
	ids := make([]int64, 0, len(segments))
	for _, seg := range segments {
		id, err := strconv.ParseInt(seg, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// AncestorIDs 解析祖先 ID（不含自身），用于深链展开
func (p TreePath) AncestorIDs() []int64 {
	ids := p.IDs()
	if len(ids) <= 1 {
		return nil
	}
	return ids[:len(ids)-1]
}

// Depth 路径对应的层级：根为 0
func (p TreePath) Depth() int {
	return len(p.IDs()) - 1
}

// RootID 路径的最顶层祖先 ID，根评论返回自身 ID
func (p TreePath) RootID() int64 {
	ids := p.IDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}
