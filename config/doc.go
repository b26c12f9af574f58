// Package config holds the layered configuration model of a cosy
// application.
//
// A Store owns one merged tree. Sources (files, in-memory maps, process
// environment) are merged into it in call order; a later layer wins at any
// path it shares with an earlier one, and nested objects are merged key by
// key rather than replaced. Values are read back by dotted path:
//
//	store := config.NewStore()
//	_ = store.Load(ctx, config.NewFileSource("config/app.json"))
//	_ = store.Load(ctx, config.NewFileSource("config/production.json"))
//	port := store.GetInt("app.port")
//
// Keys are case-insensitive and stored lower-cased, the same way viper
// treats them. LoadLayers implements the conventional directory layout:
// app.<ext> as the base layer followed by <environment>.<ext>.
package config
