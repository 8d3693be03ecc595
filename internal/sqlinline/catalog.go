package sqlinline

const QCatalogUpdateFoodImage = `--sql 6d91d43e-da2e-4759-8e54-2f8be8d4a593
update foods
set image = $2, updated_at = $3
where id = $1
returning image, updated_at;
`

const QCatalogGetFood = `--sql 583688a7-c05c-4786-bc53-d2550afbd7a1
select id, name, coalesce(image, ''), coalesce(updated_at, 0)
from foods
where id = $1;
`
