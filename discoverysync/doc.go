// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package discoverysync moves a device-local discovery list to the server.

The protocol is one-shot per player: Run sends every cached discovery to
POST /api/discoveries/migrate in batches and, once all batches return 2xx,
marks the cache migrated. Later runs for the same player do nothing until
the protocol version changes.

	cache, _ := localcache.Open("biodex.db")
	client := discoverysync.NewClient("https://api.example", nil)
	res, err := discoverysync.Run(ctx, cache, client, player, discoverysync.Options{})
*/
package discoverysync
