package config

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// 所有键齐全（便于用户直接修改），取值与 Defaults 一致。
func DefaultTemplateConfig() Config {
	return Defaults()
}
