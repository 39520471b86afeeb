package domain

// Tables are migrated when the relational backend is enabled
var Tables = []interface{}{
	&Product{},
	&Order{},
	&BlogPost{},
	&Agent{},
	&Registration{},
}
