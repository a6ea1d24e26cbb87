package confloader

import (
	"strings"

	"github.com/knadh/koanf/providers/file"
)

// envFileProvider is a koanf provider for KEY=VALUE files.
//
// Lines are split on '\n' only. Empty lines and lines starting with '#'
// are skipped. The value is everything after the first '=', untouched.
// A line without '=' records the key with a null value.
type envFileProvider struct {
	path string
}

func envFile(path string) *envFileProvider {
	return &envFileProvider{path: path}
}

// ReadBytes returns the raw file contents.
func (p *envFileProvider) ReadBytes() ([]byte, error) {
	return file.Provider(p.path).ReadBytes()
}

// Read reads and parses the file into a flat map.
func (p *envFileProvider) Read() (map[string]any, error) {
	b, err := p.ReadBytes()
	if err != nil {
		return nil, err
	}
	return parseEnvLines(string(b)), nil
}

// parseEnvLines parses env-file content. Keys without '=' map to nil,
// which ValueOf turns into Null.
func parseEnvLines(content string) map[string]any {
	out := make(map[string]any)
	for _, line := range strings.Split(content, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			out[key] = nil
			continue
		}
		out[key] = value
	}
	return out
}
