// Package config loads runtime configuration for the devfeed terminal client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   data directory (local database, device key)
//	-l string   log level: debug, info, warn, error
//
// JSON
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "data_dir": "~/.devfeed",
//	  "log_level": "warn"
//	}
//
// Empty JSON fields leave the previous value in place.
package config
