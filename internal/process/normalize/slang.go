package normalize

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed slang.txt
var slangFile string

var (
	slangOnce   sync.Once
	slangLoaded map[string]string
)

// slangDict parses the embedded slang file once. Lines are slang=formal
// pairs; malformed lines are ignored.
func slangDict() map[string]string {
	slangOnce.Do(func() {
		slangLoaded = make(map[string]string)

		for _, line := range strings.Split(slangFile, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			slang, formal, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}

			slangLoaded[strings.TrimSpace(slang)] = strings.TrimSpace(formal)
		}
	})

	return slangLoaded
}
