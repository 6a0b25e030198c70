package handler

// Client message types sent by the page.
const (
	msgSubmit    = "submit"
	msgEdit      = "edit"
	msgDelete    = "delete"
	msgFederated = "federated"
	msgSignOut   = "signout"
)

// Server message types pushed to the page.
const (
	msgLabel    = "label"
	msgControls = "controls"
	msgWall     = "wall"
	msgReset    = "reset"
	msgAlert    = "alert"
	msgRedirect = "redirect"
	msgToken    = "token"
)

type clientMessage struct {
	Type  string `json:"type"`
	Date  string `json:"date,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

type serverMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Federated bool   `json:"federated,omitempty"`
	SignOut   bool   `json:"signout,omitempty"`
	HTML      string `json:"html,omitempty"`
	Message   string `json:"message,omitempty"`
	URL       string `json:"url,omitempty"`
	Value     string `json:"value,omitempty"`
}
