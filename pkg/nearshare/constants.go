package nearshare

// AppID is the well-known application id the Near Share application
// registers itself under (spec.md §6: "the Near Share application
// registers itself under its well-known id").
const AppID = "NearSharePlatform"

// PartitionSize is the chunk size FetchDataRequest messages request
// (spec.md §6 wire constant).
const PartitionSize = 102400

// correlationPrefixSize is the fixed opaque prefix every inbound and
// outbound ValueSet payload carries (spec.md §4.7).
const correlationPrefixSize = 12

// ValueSet payload keys (spec.md §6).
const (
	keyControlMessage = "ControlMessage"
	keyDataKind       = "DataKind"
	keyFileNames      = "FileNames"
	keyBytesToSend    = "BytesToSend"
	keyUri            = "Uri"
	keyBlobPosition   = "BlobPosition"
	keyBlobSize       = "BlobSize"
	keyDataBlob       = "DataBlob"
	keyContentId      = "ContentId"
)

// ControlMessage values.
const (
	controlStartRequest      = "StartRequest"
	controlStartResponse     = "StartResponse"
	controlFetchDataRequest  = "FetchDataRequest"
	controlFetchDataResponse = "FetchDataResponse"
)

// DataKind values.
const (
	dataKindUri  = "Uri"
	dataKindFile = "File"
)
