package pubchem

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/labinv/pkg/common/code"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/utils"
)

type property struct {
	Title            string `json:"Title"`
	MolecularFormula string `json:"MolecularFormula"`
	IUPACName        string `json:"IUPACName"`
	IsomericSMILES   string `json:"IsomericSMILES"`
	CanonicalSMILES  string `json:"CanonicalSMILES"`
	SMILES           string `json:"SMILES"`
}

type propertyResponse struct {
	PropertyTable struct {
		Properties []property `json:"Properties"`
	} `json:"PropertyTable"`
}

type pubchemImpl struct {
	client *resty.Client
}

func New(baseURL string) repo.PubChemRepo {
	return &pubchemImpl{
		client: resty.New().
			SetTimeout(15*time.Second).
			SetRetryCount(1).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
}

func (p *pubchemImpl) GetCompoundByCAS(ctx context.Context, cas string) (*repo.CompoundInfo, error) {
	propResp := &propertyResponse{}
	res, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"cas":   cas,
			"props": "Title,MolecularFormula,IUPACName,IsomericSMILES,CanonicalSMILES,SMILES",
		}).
		SetResult(propResp).
		Get("/rest/pug/compound/name/{cas}/property/{props}/JSON")
	if err != nil {
		logger.Errorf(ctx, "pubchem request cas %s err: %+v", cas, err)
		return nil, code.RPCHttpErr.WithErr(err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, code.CASNotFound.WithMsgf("cas %s not found", cas)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, code.RPCHttpCodeErr.WithMsgf("pubchem status %d", res.StatusCode())
	}
	if len(propResp.PropertyTable.Properties) == 0 {
		return nil, code.CASNotFound.WithMsgf("cas %s not found", cas)
	}

	prop := propResp.PropertyTable.Properties[0]
	return &repo.CompoundInfo{
		Name:             utils.Or(prop.Title, prop.IUPACName),
		MolecularFormula: prop.MolecularFormula,
		SMILES:           utils.Or(prop.IsomericSMILES, prop.CanonicalSMILES, prop.SMILES),
	}, nil
}
