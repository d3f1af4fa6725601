// Package storage provides the provisioner's small persistent key/value store.
//
// The store holds the handful of settings that must survive a reboot, most
// importantly the start-on-boot flag read by the agent before anything else has
// been configured. Every backend implements interfaces.ConfigStore.
//
// # Store URI Format
//
// Backends are selected by URI:
//
//   - file:///data/user_de/0/com.carriez.flutter_hbb/provisioner.json
//   - sqlite:///var/lib/provisioner/store.db
//
// The file backend keeps a JSON object on disk and replaces it atomically on
// every write. The default location lives in device-protected storage so the
// boot flag can be read before the user unlocks the device. The sqlite backend
// uses a single kv table in WAL mode and suits Linux endpoints that already keep
// other state in SQLite.
//
// # Usage
//
//	store, err := storage.NewConfigStoreFor(p.Store, logger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	enabled, err := storage.BootFlag(ctx, store)
//
// A key that was never written yields interfaces.ErrKeyNotFound. BootFlag maps
// that case to false.
package storage
