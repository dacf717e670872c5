package ports

// ScriptSource resolves the script handle of a story entry node to source text.
type ScriptSource interface {
	// ReadScript returns the source of handle.
	ReadScript(handle string) (string, error)
}
