package safe

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"golang.org/x/mod/semver"
)

// Versions resolves the contract version of a wallet from its master copy.
type Versions struct {
	masterCopies   map[common.Address]string
	defaultVersion string
	breaking       []string
}

// NewVersions builds the resolver from the safe configuration.
func NewVersions(cfg config.SafeConfig) *Versions {
	v := &Versions{
		masterCopies:   make(map[common.Address]string, len(cfg.MasterCopies)),
		defaultVersion: config.CanonicalVersion(cfg.DefaultVersion),
	}
	for _, mc := range cfg.MasterCopies {
		v.masterCopies[common.HexToAddress(mc.Address)] = config.CanonicalVersion(mc.Version)
	}
	for _, b := range cfg.BreakingVersions {
		v.breaking = append(v.breaking, config.CanonicalVersion(b))
	}
	return v
}

// Known returns the version of a master copy and whether it is configured.
func (v *Versions) Known(masterCopy *common.Address) (string, bool) {
	if masterCopy == nil {
		return "", false
	}
	version, ok := v.masterCopies[*masterCopy]
	return version, ok
}

// Version returns the version of a master copy, or the default version when it is unknown.
func (v *Versions) Version(masterCopy *common.Address) string {
	if version, ok := v.Known(masterCopy); ok {
		return version
	}
	return v.defaultVersion
}

// Breaks reports whether moving from one master copy to another crosses a version that changed
// the transaction hash encoding. Unknown master copies never break.
func (v *Versions) Breaks(from, to *common.Address) bool {
	oldVersion, ok := v.Known(from)
	if !ok {
		return false
	}
	newVersion, ok := v.Known(to)
	if !ok {
		return false
	}

	for _, b := range v.breaking {
		if (semver.Compare(oldVersion, b) < 0) != (semver.Compare(newVersion, b) < 0) {
			return true
		}
	}
	return false
}

func atLeast(version, minimum string) bool {
	return semver.Compare(config.CanonicalVersion(version), config.CanonicalVersion(minimum)) >= 0
}
