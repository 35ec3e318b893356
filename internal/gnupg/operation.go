package gnupg

// Operation identifies which high-level command produced a Result. Some
// status handling depends on it.
type Operation int

const (
	OpNotSet Operation = iota
	OpListConfig
	OpVerify
	OpGenerateKey
	OpListKeys
	OpSearchKeys
	OpEncrypt
	OpDecrypt
	OpSign
	OpImport
	OpExportPublicKey
	OpExportSecretKey
	OpDeleteKey
	OpTrust
	OpRevoke
)

var operationNames = map[Operation]string{
	OpNotSet:          "NotSet",
	OpListConfig:      "ListConfig",
	OpVerify:          "Verify",
	OpGenerateKey:     "GenerateKey",
	OpListKeys:        "ListKeys",
	OpSearchKeys:      "SearchKeys",
	OpEncrypt:         "Encrypt",
	OpDecrypt:         "Decrypt",
	OpSign:            "Sign",
	OpImport:          "Import",
	OpExportPublicKey: "ExportPublicKey",
	OpExportSecretKey: "ExportSecretKey",
	OpDeleteKey:       "DeleteKey",
	OpTrust:           "Trust",
	OpRevoke:          "Revoke",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "Unknown"
}
