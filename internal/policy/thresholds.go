package policy

// Threshold parameter keys understood by the check modules.
const (
	ParamMinPasswordLength = "min_password_length"
	ParamMinLogBuffer      = "min_log_buffer"
	ParamMaxSSHRetries     = "max_ssh_retries"
	ParamMaxSSHTimeout     = "max_ssh_timeout"
	ParamMinRSAModulus     = "min_rsa_modulus"
)

// GetThreshold returns the configured float64 parameter value for a module, or
// defaultValue when no override is present. It is safe to call with cfg == nil.
//
// Lookup order:
//  1. cfg == nil → defaultValue
//  2. cfg.Modules[moduleID] absent → defaultValue
//  3. cfg.Modules[moduleID].Params[key] absent → defaultValue
//  4. Otherwise → configured value
func GetThreshold(moduleID, key string, defaultValue float64, cfg *PolicyConfig) float64 {
	if cfg == nil {
		return defaultValue
	}
	mc, ok := cfg.Modules[moduleID]
	if !ok {
		return defaultValue
	}
	v, ok := mc.Params[key]
	if !ok {
		return defaultValue
	}
	return v
}

// GetIntThreshold is GetThreshold truncated to int, which is how every
// current parameter is compared.
func GetIntThreshold(moduleID, key string, defaultValue int, cfg *PolicyConfig) int {
	return int(GetThreshold(moduleID, key, float64(defaultValue), cfg))
}
