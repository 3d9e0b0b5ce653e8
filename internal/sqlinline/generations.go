package sqlinline

const QInsertGeneration = `--sql 4f0b8c2e-9d1a-4e57-b3c6-2a7e5d9f1c84
insert into scene_generations (
    id, request_id, style_key, provider, model, status, image_url, error_message, duration_ms, created_at
) values (
    $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, nullif($7::text, ''), nullif($8::text, ''), $9::bigint, $10::timestamptz
);
`

const QListRecentGenerations = `--sql b7e21d3a-5c84-4a9f-86d0-e13f4b2c7a65
select
    id::text,
    request_id,
    style_key,
    provider,
    model,
    status,
    coalesce(image_url, '') as image_url,
    coalesce(error_message, '') as error_message,
    duration_ms,
    created_at
from scene_generations
order by created_at desc
limit $1::int;
`
