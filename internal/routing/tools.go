package routing

// Nomes exatos das ferramentas publicadas pelo gateway MCP da seguradora.
// São tratados como constantes opacas.
const (
	ToolEligibility     = "[Seguradora-MCP---DEMO]-API-Seguradora_Verifica_se_o_cliente_ou_apolice_e_elegivel_para_um_dete"
	ToolListClaims      = "[Seguradora-MCP---DEMO]-API-Seguradora_Lista_sinistros_claims_com_dados_de_cliente_apolice_stat"
	ToolRentalVehicles  = "[Seguradora-MCP---DEMO]-API-Seguradora_Lista_veiculos_disponiveis_das_locadoras_parceiras"
	ToolPolicyData      = "[Seguradora-MCP---DEMO]-API-Seguradora_Dados_gerais_de_apolices_de_seguro"
	ToolListShops       = "[Seguradora-MCP---DEMO]-API-Seguradora_Lista_oficinas_credenciadas_trazendo_dados_comor_cidade_"
	ToolListCustomers   = "[Seguradora-MCP---DEMO]-API-Seguradora_Lista_clientes_e_retorna_dados_como_nome_documento_telef"
	ToolRentalCarOffers = "[Seguradora-MCP---DEMO]-API-Seguradora_Retorna_ofertas_de_veiculos_de_locadoras_parceiras_para_"
)

// ClaimTools é o conjunto declarado em cenário de sinistro.
// LISTA_CLIENTES vem primeiro: resolve placa/apólice a partir de CPF etc.
var ClaimTools = []string{
	ToolListCustomers,
	ToolPolicyData,
	ToolEligibility,
	ToolListClaims,
	ToolListShops,
	ToolRentalCarOffers,
	ToolRentalVehicles,
}

// GeneralTools é o conjunto reduzido do cenário geral
var GeneralTools = []string{
	ToolListCustomers,
	ToolPolicyData,
	ToolListClaims,
}
