package store

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per batch run
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    config TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    documents INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0
);

-- Documents linked in a run
CREATE TABLE IF NOT EXISTS documents (
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    source TEXT,
    node_count INTEGER DEFAULT 0,
    ref_count INTEGER DEFAULT 0,
    relation_count INTEGER DEFAULT 0,
    PRIMARY KEY (run_id, name),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

-- Final deduplicated nodes; data holds the serialized record
CREATE TABLE IF NOT EXISTS nodes (
    run_id TEXT NOT NULL,
    document TEXT NOT NULL,
    position INTEGER NOT NULL,
    node_id TEXT,
    law_title TEXT,
    level TEXT,
    number TEXT,
    parent_id TEXT,
    data TEXT NOT NULL,
    PRIMARY KEY (run_id, document, position),
    FOREIGN KEY (run_id, document) REFERENCES documents(run_id, name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_nodes_id ON nodes(run_id, node_id);
CREATE INDEX IF NOT EXISTS idx_nodes_level ON nodes(run_id, document, level);

-- Outbound references, one row per (node, reference)
CREATE TABLE IF NOT EXISTS refs (
    run_id TEXT NOT NULL,
    document TEXT NOT NULL,
    src_id TEXT NOT NULL,
    ref_index INTEGER NOT NULL,
    label TEXT,
    law_title TEXT,
    target_id TEXT,
    relation TEXT,
    PRIMARY KEY (run_id, document, src_id, ref_index),
    FOREIGN KEY (run_id, document) REFERENCES documents(run_id, name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(run_id, target_id);

-- Exported relation rows
CREATE TABLE IF NOT EXISTS relations (
    run_id TEXT NOT NULL,
    document TEXT NOT NULL,
    position INTEGER NOT NULL,
    src_id TEXT,
    src_law_title TEXT,
    src_level TEXT,
    src_number TEXT,
    src_text TEXT,
    ref_index INTEGER,
    ref_label TEXT,
    ref_law_title TEXT,
    ref_id TEXT,
    ref_text TEXT,
    ref_found BOOLEAN DEFAULT 0,
    PRIMARY KEY (run_id, document, position),
    FOREIGN KEY (run_id, document) REFERENCES documents(run_id, name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_relations_ref ON relations(run_id, ref_id);
`
