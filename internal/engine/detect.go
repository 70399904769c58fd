package engine

import (
	"regexp"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// nxosMarkerRe matches tokens that only appear in NX-OS configurations: the
// nxos boot image, virtual device contexts, feature-set and the BIOS banner.
var nxosMarkerRe = regexp.MustCompile(`(?i)boot nxos|vdc|feature-set|bios:version`)

// DetectOS classifies a configuration as NX-OS when any NX-OS marker is
// present and as IOS otherwise.
func DetectOS(text string) models.OSType {
	if nxosMarkerRe.MatchString(text) {
		return models.OSTypeNXOS
	}
	return models.OSTypeIOS
}
