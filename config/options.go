package config

const (
	StoreOpt          = "store"
	KeyDirOpt         = "key_dir"
	OpenSSLBinOpt     = "openssl_bin"
	OpenSSLTimeoutOpt = "openssl_timeout"
	RSATraditionalOpt = "rsa_traditional"
	LockingOpt        = "locking"
	DebugOpt          = "debug"
	LogFileOpt        = "log_file"
	DefaultsOpt       = "defaults"
)
