package env

type Args struct {
	Test       *bool
	Pull       *bool
	Verbose    *bool
	StorePath  *string
	ListenAddr *string
}
