package repository

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	img TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zipcode TEXT NOT NULL DEFAULT '',
	available BOOLEAN NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS friends (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id INTEGER NOT NULL,
	friend_id INTEGER NOT NULL,
	UNIQUE (profile_id, friend_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_friends_friend_id ON friends (friend_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
	id BIGSERIAL PRIMARY KEY,
	img TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zipcode TEXT NOT NULL DEFAULT '',
	available BOOLEAN NOT NULL DEFAULT TRUE
)`,
	`CREATE TABLE IF NOT EXISTS friends (
	id BIGSERIAL PRIMARY KEY,
	profile_id BIGINT NOT NULL,
	friend_id BIGINT NOT NULL,
	UNIQUE (profile_id, friend_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_friends_friend_id ON friends (friend_id)`,
}

const profileColumns = `p.id, p.img, p.first_name, p.last_name, p.phone, p.address, p.city, p.state, p.zipcode, p.available`

const insertProfileSQL = `
INSERT INTO profiles (img, first_name, last_name, phone, address, city, state, zipcode, available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

const selectProfileSQL = `
SELECT ` + profileColumns + `
FROM profiles p
WHERE p.id = $1`

const listProfilesSQL = `
SELECT ` + profileColumns + `
FROM profiles p
ORDER BY p.id`

const updateProfileSQL = `
UPDATE profiles
SET img = $1, first_name = $2, last_name = $3, phone = $4, address = $5,
	city = $6, state = $7, zipcode = $8, available = $9
WHERE id = $10`

const deleteProfileFriendsSQL = `
DELETE FROM friends WHERE profile_id = $1 OR friend_id = $1`

const deleteProfileSQL = `
DELETE FROM profiles WHERE id = $1`

const countProfilesSQL = `
SELECT COUNT(*) FROM profiles WHERE id = $1 OR id = $2`

const insertFriendSQL = `
INSERT INTO friends (profile_id, friend_id)
VALUES ($1, $2)
ON CONFLICT (profile_id, friend_id) DO NOTHING`

const deleteFriendSQL = `
DELETE FROM friends
WHERE (profile_id = $1 AND friend_id = $2) OR (profile_id = $2 AND friend_id = $1)`

// bothNeighborhood lists each edge touching $1 once per orientation: outgoing
// rows (side 0) before incoming rows (side 1), each in insertion order.
const bothNeighborhood = `(
	SELECT f.friend_id AS neighbor_id, 0 AS side, f.id AS seq FROM friends f WHERE f.profile_id = $1
	UNION ALL
	SELECT f.profile_id AS neighbor_id, 1 AS side, f.id AS seq FROM friends f WHERE f.friend_id = $1
) n`

const outgoingNeighborsSQL = `
SELECT f.friend_id
FROM friends f
JOIN profiles p ON p.id = f.friend_id
WHERE f.profile_id = $1
ORDER BY f.id`

const bothNeighborsSQL = `
SELECT n.neighbor_id
FROM ` + bothNeighborhood + `
JOIN profiles p ON p.id = n.neighbor_id
ORDER BY n.side, n.seq`

const outgoingFriendsSQL = `
SELECT ` + profileColumns + `
FROM friends f
JOIN profiles p ON p.id = f.friend_id
WHERE f.profile_id = $1
ORDER BY f.id`

const bothFriendsSQL = `
SELECT ` + profileColumns + `
FROM ` + bothNeighborhood + `
JOIN profiles p ON p.id = n.neighbor_id
ORDER BY n.side, n.seq`
