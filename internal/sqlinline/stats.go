package sqlinline

const QStatsSummary = `--sql 0f0557a2-1731-4fc6-8cbe-8540b1d2b6df
select
  count(*)                                                   as total,
  count(*) filter (where failure_kind = '')                  as succeeded,
  count(*) filter (where failure_kind = 'safety_blocked')    as safety_blocked,
  count(*) filter (where failure_kind = 'rate_limited')      as rate_limited,
  count(*) filter (where failure_kind not in ('', 'safety_blocked', 'rate_limited')) as failed,
  coalesce(avg(attempts), 0)::float8                         as avg_attempts,
  coalesce(avg(duration_ms), 0)::float8                      as avg_duration_ms
from generation_logs
where created_at >= now() - interval '24 hours';
`

const QStatsByType = `--sql 7d3e1a58-2b9c-4f60-8e17-5a4c3b2d1f09
select poster_type, count(*)
from generation_logs
where created_at >= now() - interval '24 hours'
group by poster_type
order by poster_type;
`
