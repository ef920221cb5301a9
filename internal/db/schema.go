package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- RUN TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON run TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON run TYPE string
        ASSERT $value IN ["queued", "needs_login", "running", "completed", "failed"];
    DEFINE FIELD IF NOT EXISTS config ON run TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS needs_login_url ON run TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS browser_session ON run TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS token_estimate ON run TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS cost_estimate_usd ON run TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS failure_reason ON run TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON run TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS started_at ON run TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS completed_at ON run TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS run_user ON run FIELDS user_id;
    DEFINE INDEX IF NOT EXISTS run_status ON run FIELDS status;

    -- ==========================================================================
    -- RUN_EVENT TABLE (status-change audit trail)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS run_event SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON run_event TYPE string;
    DEFINE FIELD IF NOT EXISTS kind ON run_event TYPE string;
    DEFINE FIELD IF NOT EXISTS detail ON run_event TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created_at ON run_event TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS run_event_run ON run_event FIELDS run_id;

    -- ==========================================================================
    -- LOGIN_SESSION TABLE (encrypted cookie payloads)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS login_session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON login_session TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON login_session TYPE bytes;
    DEFINE FIELD IF NOT EXISTS algorithm ON login_session TYPE string;
    DEFINE FIELD IF NOT EXISTS expires_at ON login_session TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS active ON login_session TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS created_at ON login_session TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS login_session_user ON login_session FIELDS user_id, active;

    -- ==========================================================================
    -- JOB TABLE (durable work queue)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON job TYPE string
        ASSERT $value IN ["pending", "processing", "completed", "failed"];
    DEFINE FIELD IF NOT EXISTS attempts ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS max_attempts ON job TYPE int DEFAULT 3;
    DEFINE FIELD IF NOT EXISTS not_before ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS lease_until ON job TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS error ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS completed_at ON job TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS job_status ON job FIELDS status, not_before;

    -- ==========================================================================
    -- USAGE_PERIOD TABLE (per-user calendar-month counters)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS usage_period SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON usage_period TYPE string;
    DEFINE FIELD IF NOT EXISTS period ON usage_period TYPE string;
    DEFINE FIELD IF NOT EXISTS runs ON usage_period TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS tokens ON usage_period TYPE int DEFAULT 0;

    DEFINE INDEX IF NOT EXISTS usage_user_period ON usage_period FIELDS user_id, period UNIQUE;

    -- ==========================================================================
    -- ARTIFACT TABLE (content-hash integrity records for stored documents)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS artifact SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS kind ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS path ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS sha256 ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS size_bytes ON artifact TYPE int;
    DEFINE FIELD IF NOT EXISTS created_at ON artifact TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS artifact_run ON artifact FIELDS run_id;
`
