package sqlinline

const QCreateGenerationLogs = `--sql 5e2a7c91-4d18-4b6f-a3c0-8f9e1b2d7a55
create table if not exists generation_logs (
    id                 uuid primary key,
    request_id         text not null default '',
    poster_type        text not null,
    aspect_ratio       text not null,
    model_aspect_ratio text not null,
    has_image          boolean not null default false,
    has_qr_code        boolean not null default false,
    attempts           integer not null,
    failure_kind       text not null default '',
    error_message      text not null default '',
    duration_ms        bigint not null,
    created_at         timestamptz not null default now()
);
create index if not exists generation_logs_created_at_idx on generation_logs (created_at desc);
`

const QInsertGenerationLog = `--sql 9b4d2e67-1c3a-4f85-b7e2-0a6c5d8f3e19
insert into generation_logs (
    id, request_id, poster_type, aspect_ratio, model_aspect_ratio,
    has_image, has_qr_code, attempts, failure_kind, error_message, duration_ms, created_at
) values (
    $1::uuid, $2::text, $3::text, $4::text, $5::text,
    $6::boolean, $7::boolean, $8::integer, $9::text, $10::text, $11::bigint, $12::timestamptz
);
`

const QRecentGenerationLogs = `--sql 2f7a9c14-6e3b-4d08-95a1-c4e8b0d7f263
select id::text, request_id, poster_type, aspect_ratio, model_aspect_ratio,
       has_image, has_qr_code, attempts, failure_kind, error_message, duration_ms, created_at
from generation_logs
order by created_at desc
limit $1::integer;
`
