package domain

// StylePreset bundles the descriptive scene attributes used to build a prompt.
type StylePreset struct {
	Key        string `json:"-"`
	Prompt     string `json:"prompt"`
	Lighting   string `json:"lighting"`
	Background string `json:"background"`
	Camera     string `json:"camera"`
	Mood       string `json:"mood"`
}
