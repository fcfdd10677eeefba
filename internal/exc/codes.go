package exc

const (
	CodeUnknownFatal                  = "W0000"
	CodeFileNotFound                  = "W0001"
	CodeUnsuportedFileSystemOperation = "W0002"
	CodePermissionDenied              = "W0003"
	CodeUnsupportedFileFormat         = "W0004"
	CodeUnexpectedEOF                 = "W0005"
	CodeUnexpectedToken               = "W0006"
	CodeInvalidNumber                 = "W0007"
	CodeInvalidInclude                = "W0008"
	CodeInvalidExpression             = "W0009"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
