package models

// SpaceInfo identifies a Confluence space for resource listing
type SpaceInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProjectInfo identifies a Jira project for resource listing
type ProjectInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
