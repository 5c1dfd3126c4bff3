// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles schema creation, the policy catalog table and the
key-value store.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same schema runs on SQLite and PostgreSQL.

# Tables

  - policy: Policy items in feed order (position)
  - kv: String-keyed JSON records, one row per key

# Policies

SeedPolicies imports a JSON array feed; LoadPolicies returns the catalog in
feed order:

	n, err := db.SeedPolicies(ctx, conn, file)
	items, err := db.LoadPolicies(ctx, conn)
	store := catalog.New(items)

Feed ids may be strings or numbers. Re-seeding the same feed is a no-op for
items that carry ids.

# Key-Value Store

KV implements liked.Storage. Each Put replaces the whole value of a key in
one statement, so a reader never sees a partially written liked set.
*/
package db
