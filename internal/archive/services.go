package archive

import (
	"bufio"
	"bytes"
	"strings"
)

// ServicesPrefix is the directory holding service-provider registrations.
const ServicesPrefix = "META-INF/services/"

// IsServiceFile reports whether name is a service registration file.
func IsServiceFile(name string) bool {
	return strings.HasPrefix(name, ServicesPrefix) && len(name) > len(ServicesPrefix) &&
		!strings.Contains(name[len(ServicesPrefix):], "/")
}

// serviceMerger concatenates same-named service files. Provider lines keep
// first-seen order and are de-duplicated; comments and blank lines are dropped.
type serviceMerger struct {
	order []string
	lines map[string][]string
	seen  map[string]map[string]bool
}

func newServiceMerger() *serviceMerger {
	return &serviceMerger{
		lines: make(map[string][]string),
		seen:  make(map[string]map[string]bool),
	}
}

func (m *serviceMerger) add(name string, data []byte) {
	if _, ok := m.seen[name]; !ok {
		m.order = append(m.order, name)
		m.seen[name] = make(map[string]bool)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || m.seen[name][line] {
			continue
		}
		m.seen[name][line] = true
		m.lines[name] = append(m.lines[name], line)
	}
}

// files returns each merged service file rendered with trailing newline.
func (m *serviceMerger) files() map[string][]byte {
	out := make(map[string][]byte, len(m.order))
	for _, name := range m.order {
		var buf bytes.Buffer
		for _, l := range m.lines[name] {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		out[name] = buf.Bytes()
	}
	return out
}
