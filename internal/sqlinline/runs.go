package sqlinline

const QUpsertRun = `--sql 859c27f0-2250-44bf-bb36-89e13a297eb6
insert into studio_runs (id, mode, status, outcome, color_hex, succeeded, failed, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::int, $7::int, $8::timestamptz, $8::timestamptz)
on conflict (id) do update set
    status = excluded.status,
    outcome = case when excluded.outcome <> '' then excluded.outcome else studio_runs.outcome end,
    color_hex = case when excluded.color_hex <> '' then excluded.color_hex else studio_runs.color_hex end,
    succeeded = case when excluded.outcome <> '' then excluded.succeeded else studio_runs.succeeded end,
    failed = case when excluded.outcome <> '' then excluded.failed else studio_runs.failed end,
    updated_at = excluded.updated_at;
`

const QInsertRunStage = `--sql 67444f19-bb68-4ecf-acc4-136355a9f623
insert into studio_run_stages (run_id, stage, status, outcome, error, settled_at)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamptz);
`

const QListRecentRuns = `--sql c5f5b998-2d5f-4f98-abf6-32a1dd1b5454
select id, mode, status, outcome, color_hex, succeeded, failed, created_at, updated_at
from studio_runs
order by created_at desc
limit $1::int;
`
