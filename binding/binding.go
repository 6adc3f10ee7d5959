package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Resolve 将模板中的 ${path.to.value} 替换为 values 中的值，是 resolveTemplateString 的默认实现。
// 支持 "|" 后缀的回退值，例如 ${serial|N/A}；路径不存在且无回退值时保留原占位符。
// 内置变量 ${date} 与 ${time} 在 values 未提供同名键时取当前时间。
func Resolve(template string, values map[string]any) string {
	if !strings.Contains(template, "${") {
		return template
	}
	return exprPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		expr := strings.TrimSpace(groups[1])
		fallback, hasFallback := "", false
		if i := strings.Index(expr, "|"); i >= 0 {
			fallback = strings.TrimSpace(expr[i+1:])
			expr = strings.TrimSpace(expr[:i])
			hasFallback = true
		}
		if expr == "" {
			return match
		}
		if val, ok := resolvePath(values, expr); ok && val != nil {
			return fmt.Sprint(val)
		}
		if v, ok := builtin(expr); ok {
			return v
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Placeholders 返回模板中引用的全部路径（去重，按出现顺序）。
func Placeholders(template string) []string {
	var out []string
	seen := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(template, -1) {
		expr := strings.TrimSpace(groups[1])
		if i := strings.Index(expr, "|"); i >= 0 {
			expr = strings.TrimSpace(expr[:i])
		}
		if expr == "" || seen[expr] {
			continue
		}
		seen[expr] = true
		out = append(out, expr)
	}
	return out
}

// Missing 返回模板中既不在 values 中、也不是内置变量且没有回退值的路径。
func Missing(template string, values map[string]any) []string {
	fallbacks := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(template, -1) {
		expr := strings.TrimSpace(groups[1])
		if i := strings.Index(expr, "|"); i >= 0 {
			fallbacks[strings.TrimSpace(expr[:i])] = true
		}
	}
	var out []string
	for _, p := range Placeholders(template) {
		if fallbacks[p] {
			continue
		}
		if v, ok := resolvePath(values, p); ok && v != nil {
			continue
		}
		if _, ok := builtin(p); ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

var now = time.Now

func builtin(name string) (string, bool) {
	switch name {
	case "date":
		return now().Format("2006-01-02"), true
	case "time":
		return now().Format("15:04"), true
	}
	return "", false
}

func resolvePath(values map[string]any, path string) (any, bool) {
	if values == nil {
		return nil, false
	}
	// 完整键优先，允许 values 使用带点的扁平键。
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
