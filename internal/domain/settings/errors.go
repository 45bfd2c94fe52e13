package settings

import "errors"

var (
	ErrSettingsCorrupt = errors.New("settings file is not valid JSON")
)
