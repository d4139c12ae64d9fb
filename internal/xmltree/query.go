package xmltree

import "strings"

// Query resolves a slash-separated path against a Tree and returns the first
// matching node. Each segment is either a plain tag name, which selects the
// first child under that tag, or tag@child=value, which selects the first
// subtree under tag whose child key holds exactly the single leaf [value].
//
// The second return is false when any segment cannot be resolved: the tag is
// absent, the child list is empty, a leaf is reached mid-path, or no subtree
// matches the predicate.
func Query(t Tree, path string) (Value, bool) {
	cur := Subtree(t)
	for _, seg := range strings.Split(path, "/") {
		if cur.IsLeaf() {
			return Value{}, false
		}

		tag := seg
		var attr, want string
		if at := strings.IndexByte(seg, '@'); at >= 0 {
			tag = seg[:at]
			pred := seg[at+1:]
			if eq := strings.IndexByte(pred, '='); eq >= 0 {
				attr = pred[:eq]
				want = pred[eq+1:]
			}
		}

		children, ok := cur.Tree[tag]
		if !ok {
			return Value{}, false
		}

		if attr != "" {
			matched := false
			for _, child := range children {
				if child.IsLeaf() {
					continue
				}
				vals := child.Tree[attr]
				if len(vals) == 1 && vals[0].IsLeaf() && vals[0].Text == want {
					cur = child
					matched = true
					break
				}
			}
			if !matched {
				return Value{}, false
			}
			continue
		}

		if len(children) == 0 {
			return Value{}, false
		}
		cur = children[0]
	}
	return cur, true
}

// QueryText resolves path and returns the leaf text at it. It reports false
// when the path does not resolve or resolves to a subtree.
func QueryText(t Tree, path string) (string, bool) {
	v, ok := Query(t, path)
	if !ok || !v.IsLeaf() {
		return "", false
	}
	return v.Text, true
}
