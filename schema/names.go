package schema

// ToLowerCamel converts snake_case to lowerCamelCase. Names that are already
// camel cased ("actionID") only get their first letter lowered.
func ToLowerCamel(s string) string {
	if s == "" {
		return s
	}
	out := make([]byte, 0, len(s))
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upperNext = len(out) > 0
			continue
		}
		if len(out) == 0 {
			if c >= 'A' && c <= 'Z' {
				c = c - 'A' + 'a'
			}
			out = append(out, c)
			upperNext = false
			continue
		}
		if upperNext {
			if c >= 'a' && c <= 'z' {
				c = c - 'a' + 'A'
			}
			upperNext = false
		}
		out = append(out, c)
	}
	return string(out)
}

// FullName joins a package and a local name.
func FullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
