package collector

import (
	"strings"

	"github.com/nozo-moto/nbmon/pkg/types"
)

// Substrings of names or driver descriptions that mark an adapter as
// virtual. Heuristic only: a wrong guess affects display grouping,
// never rate computation.
var virtualPatterns = []string{
	"virtual",
	"vmware",
	"virtualbox",
	"hyper-v",
	"vpn",
	"tap",
	"tun",
	"bridge",
	"docker",
	"veth",
	"wg",
	"vmnet",
	"vbox",
}

// Classify infers the adapter kind from the platform-reported name,
// description and loopback flag.
func Classify(name, description string, loopback bool) types.InterfaceKind {
	if loopback || isLoopbackName(name) {
		return types.KindLoopback
	}
	lower := strings.ToLower(name + " " + description)
	for _, p := range virtualPatterns {
		if strings.Contains(lower, p) {
			return types.KindVirtual
		}
	}
	return types.KindPhysical
}

func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "lo" || lower == "lo0" || strings.HasPrefix(lower, "loopback")
}
