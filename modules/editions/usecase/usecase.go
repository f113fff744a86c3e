package usecase

import (
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
)

type Usecase struct {
	editionsDg datagateway.EditionsDataGateway
}

func New(editionsDg datagateway.EditionsDataGateway) *Usecase {
	return &Usecase{
		editionsDg: editionsDg,
	}
}
