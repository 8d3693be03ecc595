package sqlinline

// QSelectIntegrationToken reads the API key stored for a generation provider.
const QSelectIntegrationToken = `--sql 3c0f7e21-5b9a-4d6e-9f2c-81a4d7b0e513
select token
from integration_tokens
where provider = $1
`

// QUpsertIntegrationToken stores or rotates a provider API key.
const QUpsertIntegrationToken = `--sql a47d29be-0c38-4f15-b6e2-5d9e8c1f2a70
insert into integration_tokens (provider, token, properties)
values ($1, $2, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update
set token = excluded.token,
    properties = excluded.properties,
    updated_at = now()
`
