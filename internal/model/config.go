package model

// Viewport is a screen size/device profile pages are rendered at.
type Viewport struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Label    string `json:"label"`
	IsMobile bool   `json:"is_mobile,omitempty"`
}

// DefaultViewports returns the desktop/tablet/mobile triple used when the
// caller does not configure viewports.
func DefaultViewports() []Viewport {
	return []Viewport{
		{Width: 1440, Height: 900, Label: "desktop"},
		{Width: 768, Height: 1024, Label: "tablet"},
		{Width: 375, Height: 667, Label: "mobile", IsMobile: true},
	}
}

// ScanConfig selects which check plugins run and how pages are rendered.
type ScanConfig struct {
	CheckLayout        bool `json:"check_layout"`
	CheckInteraction   bool `json:"check_interaction"`
	CheckAccessibility bool `json:"check_accessibility"`
	CheckTypo          bool `json:"check_typo"`
	CheckVisual        bool `json:"check_visual"`
	CheckNavigation    bool `json:"check_navigation"`
	CheckForms         bool `json:"check_forms"`

	// Viewports defaults to DefaultViewports when empty.
	Viewports []Viewport `json:"viewports,omitempty"`

	// MaxBugsPerCategory caps findings sharing a category prefix after
	// dedup; 0 means unlimited.
	MaxBugsPerCategory int `json:"max_bugs_per_category,omitempty"`

	// ScreenshotQuality is the JPEG quality for the full-page capture;
	// 0 disables screenshots.
	ScreenshotQuality int `json:"screenshot_quality,omitempty"`

	// CustomWhitelist lists words the typo check must not flag.
	CustomWhitelist []string `json:"custom_whitelist,omitempty"`
}

// DefaultScanConfig enables every check at the default viewports.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		CheckLayout:        true,
		CheckInteraction:   true,
		CheckAccessibility: true,
		CheckTypo:          true,
		CheckVisual:        true,
		CheckNavigation:    true,
		CheckForms:         true,
		Viewports:          DefaultViewports(),
		ScreenshotQuality:  60,
	}
}

// EffectiveViewports resolves the viewport list, falling back to defaults.
func (c ScanConfig) EffectiveViewports() []Viewport {
	if len(c.Viewports) == 0 {
		return DefaultViewports()
	}
	return c.Viewports
}
