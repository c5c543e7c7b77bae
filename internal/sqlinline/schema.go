package sqlinline

// QEnsureSchema creates the tables used for settings and run history.
const QEnsureSchema = `--sql dcb18151-4a0e-4c2a-a2d1-f123cf0f84a5
create table if not exists integration_tokens (
    id uuid primary key,
    provider text not null unique,
    token text not null default '',
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create table if not exists studio_runs (
    id text primary key,
    mode text not null,
    status text not null,
    outcome text not null default '',
    color_hex text not null default '',
    succeeded integer not null default 0,
    failed integer not null default 0,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create table if not exists studio_run_stages (
    id bigserial primary key,
    run_id text not null references studio_runs (id) on delete cascade,
    stage text not null,
    status text not null,
    outcome text not null default '',
    error text not null default '',
    settled_at timestamptz not null
);
create index if not exists studio_run_stages_run_id_idx on studio_run_stages (run_id, settled_at);
`
