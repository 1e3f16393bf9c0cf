package verifier

// algorithms binds the catalog ids to their implementations. Ids without an
// entry here are reported as not implemented.
func algorithms() map[string]Algorithm {
	return map[string]Algorithm{
		"01.01": verifySetupCompleteness,

		"02.01": signatureCheck(encryptionParametersSignatures),
		"02.02": signatureCheck(configurationSignatures),
		"02.03": signatureCheck(controlComponentPublicKeysSignatures),
		"02.04": signatureCheck(setupComponentPublicKeysSignatures),
		"02.05": signatureCheck(codeSharesSignatures),
		"02.06": signatureCheck(verificationDataSignatures),
		"02.07": signatureCheck(tallyDataSignatures),
		"02.08": signatureCheck(electionEventContextSignatures),

		"03.01": verifySetupEncryptionGroups,
		"03.02": verifySetupFileNames,
		"03.03": verifyCCRKeyConsistency,
		"03.04": verifyCCMKeyConsistency,
		"03.05": verifySchnorrProofConsistency,
		"03.06": verifyChoiceReturnCodesKey,
		"03.07": verifyElectionPublicKey,
		"03.08": verifyPrimesMappingTables,
		"03.09": verifySetupElectionEventIDs,
		"03.10": verifyVerificationCardSetIDs,
		"03.11": verifyFileNameVerificationCardSetIDs,
		"03.12": verifyVerificationCardIDs,
		"03.13": verifyTotalVoters,
		"03.14": verifySetupNodeIDs,
		"03.15": verifyChunks,

		"04.01": verifySetupIntegrity,

		"05.01": verifyEncryptionParameters,
		"05.02": verifySmallPrimeGroupMembers,
		"05.03": verifyVotingOptions,
		"05.04": verifyKeyGenerationSchnorrProofs,
		"05.21": verifyEncryptedPCCExponentiationProofs,
		"05.22": verifyEncryptedCKExponentiationProofs,

		"06.01": verifyTallyCompleteness,

		"07.01": signatureCheck(controlComponentBallotBoxSignatures),
		"07.02": signatureCheck(controlComponentShuffleSignatures),
		"07.03": signatureCheck(tallyComponentShuffleSignatures),
		"07.04": signatureCheck(tallyComponentVotesSignatures),
		"07.05": signatureCheck(decryptResultsSignatures),
		// 07.06 and 07.07 cover the eCH-0222 and eCH-0110 exports,
		// which the dataset does not carry yet

		"08.01": verifyConfirmedVotesConsistency,
		"08.02": verifyCiphertextsConsistency,
		"08.03": verifyPlaintextsConsistency,
		"08.04": verifyTallyVerificationCardIDs,
		"08.05": verifyBallotBoxIDs,
		"08.06": verifyFileNameBallotBoxIDs,
		"08.07": verifyConfirmedVoteCounts,
		"08.08": verifyTallyElectionEventIDs,
		"08.09": verifyTallyNodeIDs,
		"08.10": verifyFileNameNodeIDs,
		"08.11": verifyTallyEncryptionGroups,
		"08.12": verifyCastBallots,
		"08.13": verifyBallotBoxIdentification,
		"08.14": verifyChosenIdentifiers,
		"08.15": verifyDecryptResultsConsistency,

		"09.01": verifyTallyIntegrity,

		"10.01": verifyOnlineMixing,
		"10.02": verifyOfflineMixing,
	}
}
