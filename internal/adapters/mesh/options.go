package mesh

// Option configures a Loader.
type Option func(*Loader)

// WithPackagePaths sets the roots searched for package://name/... resources.
func WithPackagePaths(paths []string) Option {
	return func(l *Loader) {
		l.packagePaths = append([]string(nil), paths...)
	}
}

// WithMeshRoot sets the directory relative resource paths resolve against.
func WithMeshRoot(root string) Option {
	return func(l *Loader) {
		l.meshRoot = root
	}
}
