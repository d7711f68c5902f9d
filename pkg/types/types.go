package types

import (
	"time"
)

// FileProperties is the already-exists / override policy applied by writers
type FileProperties struct {
	OverrideFiles   bool `json:"overrideFiles" mapstructure:"override-files"`
	FileExistsError bool `json:"fileExistsError" mapstructure:"file-exists-error"`
	DirExistsError  bool `json:"dirExistsError" mapstructure:"dir-exists-error"`
}

// DefaultFileProperties leaves existing files and directories untouched and
// never reports them as errors.
func DefaultFileProperties() FileProperties {
	return FileProperties{}
}

// FindStatus is the outcome of a completed search
type FindStatus int

const (
	NotFound FindStatus = iota
	Found
)

func (s FindStatus) String() string {
	if s == Found {
		return "found"
	}
	return "not_found"
}

// SearchStats counts the filesystem work done by one search
type SearchStats struct {
	Probes      int           `json:"probes"`
	Listings    int           `json:"listings"`
	Visited     int           `json:"visited"`
	Skipped     int           `json:"skipped"`
	MaxFrontier int           `json:"maxFrontier"`
	Duration    time.Duration `json:"duration"`
}

// FindResult is the result of a search that did not fail. Path is relative
// to the start directory, BaseRelPath to the base directory.
type FindResult struct {
	Target      string      `json:"target"`
	Status      FindStatus  `json:"status"`
	Path        string      `json:"path,omitempty"`
	BaseRelPath string      `json:"baseRelPath,omitempty"`
	Stats       SearchStats `json:"stats"`
}

// Found reports whether the target was located
func (r FindResult) Found() bool {
	return r.Status == Found
}

// TargetResult is the outcome of one search in a batch
type TargetResult struct {
	Target string
	Result FindResult
	Err    error
}
