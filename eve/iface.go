package eve

import "strings"

// normIfName folds interface name aliases so lookups match regardless of the
// spelling the caller used: "Gi0/0" == "GigabitEthernet0/0".
func normIfName(name string) string {
	n := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	n = strings.ReplaceAll(n, "gigabitethernet", "gi")
	n = strings.ReplaceAll(n, "fastethernet", "fa")
	n = strings.ReplaceAll(n, "ethernet", "e")
	return n
}
