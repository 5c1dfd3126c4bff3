// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session keys, device hashing and ID generation.

# Session Keys

Session keys use HMAC-SHA256 to create deterministic, verifiable keys:

	sessionID := auth.NewSessionID()
	key := auth.GenerateSessionKey(sessionID, salt)
	err := auth.ValidateSessionKey(sessionID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the server validates it without storing it. Clients send it in the
X-Session-Key header on every session request.

# Devices

Liked sets and analysis labels are scoped to a device, identified by the
UUID the client sends in X-Device-UUID:

	deviceID, err := auth.ParseDeviceID(r.Header.Get("X-Device-UUID"))
	hash := auth.HashDevice(deviceID, salt)
	set := liked.Load(ctx, kv, auth.LikedKey(hash))

Only the salted hash reaches storage.

# ID Generation

Random hex IDs for feed items that arrive without one:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
