package parser

// LastMichelsonOpcode is the highest opcode index for which a name is
// defined today; the table is append-only across protocol upgrades, so
// this constant only ever grows.
const LastMichelsonOpcode = 158

// michelsonOpNames names every Michelson primitive by its opcode, in the
// same order as michelson_v1_primitives.ml. Index-stable: existing
// entries never move, new protocol upgrades only append.
var michelsonOpNames = [LastMichelsonOpcode + 1]string{
	0:   "parameter",
	1:   "storage",
	2:   "code",
	3:   "False",
	4:   "Elt",
	5:   "Left",
	6:   "None",
	7:   "Pair",
	8:   "Right",
	9:   "Some",
	10:  "True",
	11:  "Unit",
	12:  "PACK",
	13:  "UNPACK",
	14:  "BLAKE2B",
	15:  "SHA256",
	16:  "SHA512",
	17:  "ABS",
	18:  "ADD",
	19:  "AMOUNT",
	20:  "AND",
	21:  "BALANCE",
	22:  "CAR",
	23:  "CDR",
	24:  "CHECK_SIGNATURE",
	25:  "COMPARE",
	26:  "CONCAT",
	27:  "CONS",
	28:  "CREATE_ACCOUNT",
	29:  "CREATE_CONTRACT",
	30:  "IMPLICIT_ACCOUNT",
	31:  "DIP",
	32:  "DROP",
	33:  "DUP",
	34:  "EDIV",
	35:  "EMPTY_MAP",
	36:  "EMPTY_SET",
	37:  "EQ",
	38:  "EXEC",
	39:  "FAILWITH",
	40:  "GE",
	41:  "GET",
	42:  "GT",
	43:  "HASH_KEY",
	44:  "IF",
	45:  "IF_CONS",
	46:  "IF_LEFT",
	47:  "IF_NONE",
	48:  "INT",
	49:  "LAMBDA",
	50:  "LE",
	51:  "LEFT",
	52:  "LOOP",
	53:  "LSL",
	54:  "LSR",
	55:  "LT",
	56:  "MAP",
	57:  "MEM",
	58:  "MUL",
	59:  "NEG",
	60:  "NEQ",
	61:  "NIL",
	62:  "NONE",
	63:  "NOT",
	64:  "NOW",
	65:  "OR",
	66:  "PAIR",
	67:  "PUSH",
	68:  "RIGHT",
	69:  "SIZE",
	70:  "SOME",
	71:  "SOURCE",
	72:  "SENDER",
	73:  "SELF",
	74:  "STEPS_TO_QUOTA",
	75:  "SUB",
	76:  "SWAP",
	77:  "TRANSFER_TOKENS",
	78:  "SET_DELEGATE",
	79:  "UNIT",
	80:  "UPDATE",
	81:  "XOR",
	82:  "ITER",
	83:  "LOOP_LEFT",
	84:  "ADDRESS",
	85:  "CONTRACT",
	86:  "ISNAT",
	87:  "CAST",
	88:  "RENAME",
	89:  "bool",
	90:  "contract",
	91:  "int",
	92:  "key",
	93:  "key_hash",
	94:  "lambda",
	95:  "list",
	96:  "map",
	97:  "big_map",
	98:  "nat",
	99:  "option",
	100: "or",
	101: "pair",
	102: "set",
	103: "signature",
	104: "string",
	105: "bytes",
	106: "mutez",
	107: "timestamp",
	108: "unit",
	109: "operation",
	110: "address",
	111: "SLICE",
	112: "DIG",
	113: "DUG",
	114: "EMPTY_BIG_MAP",
	115: "APPLY",
	116: "chain_id",
	117: "CHAIN_ID",
	118: "LEVEL",
	119: "SELF_ADDRESS",
	120: "never",
	121: "NEVER",
	122: "UNPAIR",
	123: "VOTING_POWER",
	124: "TOTAL_VOTING_POWER",
	125: "KECCAK",
	126: "SHA3",
	127: "PAIRING_CHECK",
	128: "bls12_381_g1",
	129: "bls12_381_g2",
	130: "bls12_381_fr",
	131: "sapling_state",
	132: "sapling_transaction_deprecated",
	133: "SAPLING_EMPTY_STATE",
	134: "SAPLING_VERIFY_UPDATE",
	135: "ticket",
	136: "TICKET_DEPRECATED",
	137: "READ_TICKET",
	138: "SPLIT_TICKET",
	139: "JOIN_TICKETS",
	140: "GET_AND_UPDATE",
	141: "chest",
	142: "chest_key",
	143: "OPEN_CHEST",
	144: "VIEW",
	145: "view",
	146: "constant",
	147: "SUB_MUTEZ",
	148: "tx_rollup_l2_address",
	149: "MIN_BLOCK_TIME",
	150: "sapling_transaction",
	151: "EMIT",
	152: "Lambda_rec",
	153: "LAMBDA_REC",
	154: "TICKET",
	155: "BYTES",
	156: "NAT",
	157: "Ticket",
	158: "IS_IMPLICIT_ACCOUNT",
}

// MichelsonOpName returns the human-readable name of a Michelson
// primitive opcode, and false if opCode exceeds LastMichelsonOpcode.
func MichelsonOpName(opCode int) (string, bool) {
	if opCode < 0 || opCode > LastMichelsonOpcode {
		return "", false
	}
	return michelsonOpNames[opCode], true
}
