package sqlinline

// Provider credentials for the scene generators. Only "openai" and
// "replicate" rows are read or written.

const QSelectIntegrationToken = `--sql 3c1f7e2a-5b9d-4e60-a8c4-1d2e7f905b31
select token
from integration_tokens
where provider = lower($1::text)
  and provider in ('openai', 'replicate')
limit 1;
`

// QUpsertIntegrationToken inserts no row for an unknown provider.
const QUpsertIntegrationToken = `--sql 9e4b2d71-0a6c-4f38-b5e2-6c8d1f3a7e04
with incoming as (
    select
        lower($1::text) as provider,
        $2::text as token,
        coalesce($3::jsonb, '{}'::jsonb) as properties
)
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
select gen_random_uuid(), provider, token, properties, now(), now()
from incoming
where provider in ('openai', 'replicate')
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
