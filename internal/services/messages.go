package services

// Client facing messages.
const (
	msgCaseExists       = "processo já existe"
	msgCaseNotFound     = "processo não encontrado"
	msgDocumentNotFound = "documento não encontrado"
	msgInvalidPayload   = "payload inválido"
	msgCaseCreated      = "processo cadastrado"
	msgDocumentCreated  = "documento cadastrado"
	msgEmptyFile        = "arquivo vazio"
	msgStoreFailed      = "falha ao armazenar documento"
	msgQueueFailed      = "falha ao enfileirar documento para extração"
	msgRetrieveFailed   = "falha ao consultar registros"
	msgSaveFailed       = "falha ao salvar registro"
)
