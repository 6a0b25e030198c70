// Package wall drives one connected page: session chrome, the live note wall and the new-note form.
package wall

// View is the page a Controller drives.
type View interface {
	SetUserLabel(label string)
	SetControls(federated, signOut bool)
	RenderWall(markup string)
	ResetForm()
	Alert(message string)
	Redirect(url string)
	// StoreToken persists the session token in the page. An empty token clears it.
	StoreToken(token string)
}
