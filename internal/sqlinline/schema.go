package sqlinline

// QEnsureSchema creates the tables the service reads and writes. It is
// idempotent and runs at startup when a database is configured.
const QEnsureSchema = `--sql 0c5a9e71-3b2d-4f86-a4e1-7d9b6c2f8e30
create table if not exists integration_tokens (
    id uuid primary key,
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists scene_generations (
    id uuid primary key,
    request_id text not null default '',
    style_key text not null,
    provider text not null,
    model text not null default '',
    status text not null,
    image_url text,
    error_message text,
    duration_ms bigint not null default 0,
    created_at timestamptz not null default now()
);

create index if not exists scene_generations_created_at_idx on scene_generations (created_at desc);
`
