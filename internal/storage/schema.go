package storage

// Timestamps are stored as epoch milliseconds in UTC. The scheduling
// columns on 'cards' are all NULL for a never-reviewed card and are
// always written together.
const schema = `
-- The 'cards' table stores each flashcard together with its current
-- scheduling state.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    source_id INTEGER,
    ease_factor REAL,
    interval_days INTEGER,
    repetitions INTEGER,
    next_review INTEGER,
    last_reviewed INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- The 'reviews' table is the append-only review history.
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    reviewed_at INTEGER NOT NULL,
    response TEXT NOT NULL,
    quality INTEGER,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);

-- The 'sources' table tracks card origins: a local directory or a git
-- repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL DEFAULT 'local',
    last_synced INTEGER
);
`
