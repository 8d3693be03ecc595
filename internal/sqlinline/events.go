package sqlinline

const QEventsEnqueue = `--sql be508a94-820b-44a5-a4d4-699cb8761f81
insert into catalog_events (id, envelope, status, attempts, available_at, created_at, updated_at)
values ($1, $2, 'PENDING', 0, now(), now(), now())
returning id;
`

const QEventsClaimNext = `--sql 549a8884-1171-451e-85bd-8f86053e9ba3
with next_event as (
    select id
    from catalog_events
    where status = 'PENDING' and available_at <= now()
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update catalog_events
    set status = 'RUNNING', attempts = attempts + 1, updated_at = now()
    where id in (select id from next_event)
    returning id, envelope, attempts
)
select * from updated;
`

const QEventsComplete = `--sql 3d4e0f27-115e-4053-b434-fa887ae08505
update catalog_events
set status = $2, result = $3, error = nullif($4, ''), updated_at = now()
where id = $1;
`

const QEventsRequeue = `--sql 3d1f7874-b7f0-4037-87b7-908bfdffe917
update catalog_events
set status = 'PENDING',
    error = nullif($3, ''),
    available_at = now() + make_interval(secs => $2),
    updated_at = now()
where id = $1;
`

const QEventsResetStale = `--sql 861b52e6-a37f-4614-b308-a72855ad1ad6
update catalog_events
set status = 'PENDING', updated_at = now()
where status = 'RUNNING' and updated_at < now() - make_interval(secs => $1);
`
